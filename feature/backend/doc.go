// Package backend serves the records API that engines in http remote mode
// sync against. It fronts a remote.Backend, normally the gorm DBBackend over
// the work_orders, hazard_reports and inspections tables.
package backend
