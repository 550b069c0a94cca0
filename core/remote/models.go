package remote

import "time"

// WorkOrder is the backend row status updates merge into.
type WorkOrder struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	Title      string    `gorm:"column:title"`
	Status     string    `gorm:"column:status;size:32"`
	Priority   string    `gorm:"column:priority;size:16"`
	AssignedTo string    `gorm:"column:assigned_to;size:64"`
	Notes      string    `gorm:"column:notes;type:text"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

// TableName overrides the table name.
func (WorkOrder) TableName() string {
	return CollectionWorkOrders
}

// HazardReport is a field hazard filed by a technician.
type HazardReport struct {
	ID          string    `gorm:"column:id;primaryKey;size:64"`
	WorkOrderID string    `gorm:"column:work_order_id;size:64;index"`
	Description string    `gorm:"column:description;type:text"`
	Severity    string    `gorm:"column:severity;size:16"`
	Location    string    `gorm:"column:location"`
	ReportedBy  string    `gorm:"column:reported_by;size:64"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

// TableName overrides the table name.
func (HazardReport) TableName() string {
	return CollectionHazardReports
}

// Inspection is a completed inspection checklist.
type Inspection struct {
	ID          string    `gorm:"column:id;primaryKey;size:64"`
	WorkOrderID string    `gorm:"column:work_order_id;size:64;index"`
	Checklist   string    `gorm:"column:checklist;type:text"`
	Result      string    `gorm:"column:result;size:16"`
	Notes       string    `gorm:"column:notes;type:text"`
	InspectorID string    `gorm:"column:inspector_id;size:64"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

// TableName overrides the table name.
func (Inspection) TableName() string {
	return CollectionInspections
}

// collectionModels maps every collection the DB backend serves to its model.
var collectionModels = map[string]any{
	CollectionWorkOrders:    &WorkOrder{},
	CollectionHazardReports: &HazardReport{},
	CollectionInspections:   &Inspection{},
}
