package v1

import (
	"errors"

	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/pkg/api"
)

// problemFrom maps gateway errors onto RFC 9457 problems. Vendor-attributed
// failures surface as 502s so callers can tell gateway misuse from upstream
// trouble; malformed requests stay 400s.
func problemFrom(err error) *api.Problem {
	var problem *api.Problem
	if errors.As(err, &problem) {
		return problem
	}

	var gwErr *llm.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Kind {
		case llm.KindRequestBuildFailed:
			return api.BadRequestError(gwErr.Error())
		case llm.KindCredentialMissing, llm.KindEndpointUnresolved:
			return api.InternalError("Provider is misconfigured", gwErr)
		default:
			return api.ProviderError(gwErr.Error(), gwErr)
		}
	}

	return api.InternalError("Failed to process request", err)
}
