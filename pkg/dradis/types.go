package dradis

// ProjectClient identifies the client a project belongs to.
type ProjectClient struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is a Dradis user reference.
type User struct {
	Email string `json:"email"`
}

// CustomField is a project-level custom field.
type CustomField struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProjectCreation reports the asynchronous creation state of a project:
// "being_created" or "completed".
type ProjectCreation struct {
	State string `json:"state"`
}

// ProjectDetails is the full project record as returned by the API.
type ProjectDetails struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Client          ProjectClient    `json:"client"`
	ProjectCreation *ProjectCreation `json:"project_creation,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
	Authors         []User           `json:"authors"`
	Owners          []User           `json:"owners"`
	CustomFields    []CustomField    `json:"custom_fields,omitempty"`
}

// CreateProject is the payload for project creation.
type CreateProject struct {
	Name                       string `json:"name"`
	TeamID                     int    `json:"team_id"`
	ReportTemplatePropertiesID int    `json:"report_template_properties_id,omitempty"`
	AuthorIDs                  []int  `json:"author_ids,omitempty"`
	Template                   string `json:"template,omitempty"`
}

// Vulnerability is the full issue record as returned by the API.
type Vulnerability struct {
	ID        int      `json:"id"`
	Author    string   `json:"author"`
	Title     string   `json:"title"`
	Fields    FieldBag `json:"fields"`
	Text      string   `json:"text"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// VulnerabilityListItem is the narrow projection used by list views.
type VulnerabilityListItem struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Fields FieldBag `json:"fields"`
}

// ContentBlock is the full content block record as returned by the API.
type ContentBlock struct {
	ID         int      `json:"id"`
	Author     string   `json:"author"`
	BlockGroup string   `json:"block_group"`
	Title      string   `json:"title"`
	Fields     FieldBag `json:"fields"`
	Content    string   `json:"content"`
}

// ContentBlockSummary is the list projection: block_group and title are
// dropped, only id and the field bag remain.
type ContentBlockSummary struct {
	ID     int      `json:"id"`
	Fields FieldBag `json:"fields"`
}

// DocumentProperty is a single-key {name: value} mapping. The API models
// the property collection as a list of these; a null value means the
// property exists but is unset.
type DocumentProperty map[string]any
