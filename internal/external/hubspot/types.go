package hubspot

// Object is a CRM object as returned by the v3 objects API
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
	Archived   bool              `json:"archived"`
}

// Prop returns a property value, empty when absent or null
func (o Object) Prop(name string) string {
	return o.Properties[name]
}

// Paging is the cursor block of list responses
type Paging struct {
	Next *PagingNext `json:"next,omitempty"`
}

// PagingNext holds the cursor for the next page
type PagingNext struct {
	After string `json:"after"`
	Link  string `json:"link,omitempty"`
}

// ObjectPage is one page of GET /crm/v3/objects/{type}
type ObjectPage struct {
	Results []Object `json:"results"`
	Paging  *Paging  `json:"paging,omitempty"`
}

// NextAfter returns the cursor of the next page, empty on the last page
func (p ObjectPage) NextAfter() string {
	if p.Paging == nil || p.Paging.Next == nil {
		return ""
	}
	return p.Paging.Next.After
}

// AssociationType describes one association label between two objects
type AssociationType struct {
	TypeID   int    `json:"typeId"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// AssociationResult is one target of a v4 association listing
type AssociationResult struct {
	ToObjectID string            `json:"toObjectId"`
	Types      []AssociationType `json:"associationTypes"`
}

// AssociationPage is one page of GET /crm/v4/objects/{from}/{id}/associations/{to}
type AssociationPage struct {
	Results []AssociationResult `json:"results"`
	Paging  *Paging             `json:"paging,omitempty"`
}

// BatchReadRequest is the body of POST /crm/v3/objects/{type}/batch/read
type BatchReadRequest struct {
	Properties []string       `json:"properties"`
	Inputs     []BatchInputID `json:"inputs"`
}

// BatchInputID names one object to read
type BatchInputID struct {
	ID string `json:"id"`
}

// BatchResult is the response of a batch read
type BatchResult struct {
	Status  string   `json:"status"`
	Results []Object `json:"results"`
}

// Pipeline is a deal pipeline with its stages
type Pipeline struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	DisplayOrder int             `json:"displayOrder"`
	Stages       []PipelineStage `json:"stages"`
	Archived     bool            `json:"archived"`
}

// PipelineStage is one stage of a pipeline
type PipelineStage struct {
	ID           string            `json:"id"`
	Label        string            `json:"label"`
	DisplayOrder int               `json:"displayOrder"`
	Metadata     map[string]string `json:"metadata"`
	Archived     bool              `json:"archived"`
}

type pipelineList struct {
	Results []Pipeline `json:"results"`
}

// DealEngagements are the raw engagement objects associated with one deal
type DealEngagements struct {
	Calls    []Object
	Emails   []Object
	Meetings []Object
}
