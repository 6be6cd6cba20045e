// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package userid

import (
	"context"

	"github.com/go-kit/kit/endpoint"
)

// newGetIDEndpoint runs one document lifecycle: the submodule answers from
// storage, then the document finishes loading and any deferred work runs.
func newGetIDEndpoint(r *Registry) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		idRequest := request.(*idRequest)
		s, err := r.Get(Category, idRequest.name)
		if err != nil {
			return nil, err
		}

		resp := s.GetID(ctx, idRequest.doc, idRequest.config, idRequest.signal)
		idRequest.doc.Load()

		out := &idResponse{}
		if resp.ID != nil {
			out.ID = make(IDs, len(resp.ID))
			for k, v := range resp.ID {
				out.ID[k] = s.Decode(v)
			}
		}
		if idRequest.jar != nil {
			out.cookies = idRequest.jar.Cookies()
		}
		return out, nil
	}
}
