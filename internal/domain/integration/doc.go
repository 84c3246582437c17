// Package integration contains the Integration bounded context.
// This context moves tenant compliance data (companies, sites, workers, machines,
// documents) to external coordination platforms (Nalanda, CTAIMA, Ecoordina, ...).
//
// Key concepts:
//   - Path: dotted address into a JSON tree with at most one array wildcard
//   - TransformRegistry: named, parameterized pure functions applied to resolved values
//   - MappingEngine: applies a MappingTemplate's rules to a canonical payload
//   - CanonicalPayload / PayloadBuilder: platform-agnostic representation of one site
//   - MappingTemplate: versioned (destination schema, rules) pair per tenant and platform
//   - IntegrationJob: aggregate tracking one dispatch through its state machine
//   - RemediationTask: follow-up work item created on terminal rejection or error
//
// Design Pattern: Ports & Adapters
//   - Ports (PlatformAdapter, WebhookVerifier, RemediationTaskCreator, repositories)
//     are defined here in the domain layer
//   - Adapters (HTTP platform client, HMAC verifier, GORM repositories) are in the
//     infrastructure layer
package integration
