// Package models contains GORM persistence models that map to database tables.
// Domain types stay free of ORM tags; each model converts to and from its
// domain counterpart.
//
// Structure:
//   - base.go: tenant aggregate columns shared by aggregate tables
//   - integration_job.go: integration_jobs
//   - mapping_template.go: mapping_templates
//   - remediation_task.go: remediation_tasks
//   - audit_log.go: integration_audit_log
//   - outbox.go: outbox_events for event delivery
package models
