// AngelaMos | 2026
// dto.go

package store

type CreateStoreRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role"  validate:"required,oneof=admin editor viewer"`
}

type AccessResponse struct {
	StoreID  string `json:"store_id"`
	Role     string `json:"role"`
	CanWrite bool   `json:"can_write"`
}

func ToAccessResponse(storeID string, a Access) AccessResponse {
	return AccessResponse{
		StoreID:  storeID,
		Role:     a.RoleName(),
		CanWrite: a.CanWrite(),
	}
}
