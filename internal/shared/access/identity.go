package access

import "pipeline_crm_backend/platform/httpkit"

// FromIdentity converts an HTTP-layer identity into a domain actor.
func FromIdentity(id httpkit.Identity) Actor {
	return Actor{ID: id.UserID(), Role: Role(id.Role())}
}
