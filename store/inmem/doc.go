/*
Package inmem implements the store DAO interface. This implementation is meant
to help get an instance of the service up and running quickly without a need to
setup a dedicated DB. Items live only as long as the process, so it is
recommended for test environments and single instance deployments only.
*/
package inmem
