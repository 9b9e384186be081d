package session

// Record is one tasting session. Fields other than the identifier are
// optional: entries imported from the group's spreadsheet era are sparse.
type Record struct {
	ID       string   `json:"id,omitempty"`
	Host     string   `json:"host,omitempty"`
	Whisky   string   `json:"whisky,omitempty"`
	Date     string   `json:"date,omitempty"`
	Region   string   `json:"region,omitempty"`
	RRP      *float64 `json:"rrp,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	DMURL    string   `json:"dm_url,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// Patch is a partial update to a Record. A nil field leaves the current
// value untouched; a set field overwrites it wholesale.
type Patch struct {
	ID       *string  `json:"id"`
	Host     *string  `json:"host"`
	Whisky   *string  `json:"whisky"`
	Date     *string  `json:"date"`
	Region   *string  `json:"region"`
	RRP      *float64 `json:"rrp"`
	ImageURL *string  `json:"image_url"`
	DMURL    *string  `json:"dm_url"`
	Notes    *string  `json:"notes"`
}

// Apply merges the patch into the record, field by field.
func (r *Record) Apply(p Patch) {
	if p.ID != nil {
		r.ID = *p.ID
	}
	if p.Host != nil {
		r.Host = *p.Host
	}
	if p.Whisky != nil {
		r.Whisky = *p.Whisky
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Region != nil {
		r.Region = *p.Region
	}
	if p.RRP != nil {
		v := *p.RRP
		r.RRP = &v
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	if p.DMURL != nil {
		r.DMURL = *p.DMURL
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}
