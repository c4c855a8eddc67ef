package types

// UserResponse is the public shape of a user record.
type UserResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsStaff    bool   `json:"is_staff"`
	IsVerified bool   `json:"is_verified"`
	Department string `json:"department"`
	ImageURL   string `json:"image_url,omitempty"`
}

// MemberResponse is a user plus their privilege on some project.
type MemberResponse struct {
	UserResponse
	Permission string `json:"permission"`
}

// ProjectResponse is the public shape of a project record.
type ProjectResponse struct {
	ID         uint     `json:"id"`
	Name       string   `json:"name"`
	Abstract   string   `json:"abstract"`
	PaperLink  string   `json:"paper_link"`
	Department string   `json:"department"`
	HeadID     uint     `json:"head_id"`
	HeadName   string   `json:"head_name"`
	AorTags    []string `json:"aor_tags"`
	LabTags    []string `json:"lab_tags"`
	CoeTags    []string `json:"coe_tags"`
	Tags       []string `json:"tags"`
}

// ProjectDetailResponse adds the member list to a project.
type ProjectDetailResponse struct {
	ProjectResponse
	Members []MemberResponse `json:"members"`
}
