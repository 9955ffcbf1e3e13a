// Package integration contains the ports to external business systems.
//
// Key concepts:
//   - CRM: a customer relationship system (Bitrix24) that owns companies and invoices
//   - Accounting: an accounting system (1C) that owns invoices with their lines
//   - Company, Invoice, InvoiceLine: records as read from those systems
//
// Ports are defined here; adapters live in the infrastructure layer.
package integration
