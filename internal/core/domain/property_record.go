package domain

// PropertyRecord is an assessor entry looked up while filling in an
// application. Metadata holds free-form attributes such as yearBuilt.
type PropertyRecord struct {
	ID         string         `json:"id"`
	Address    string         `json:"address"`
	ParcelID   string         `json:"parcelId"`
	RecordType string         `json:"recordType"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
