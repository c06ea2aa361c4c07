// Package triage is the business boundary of the sentinel bot. It owns
// webhook dedup, the pre-AI gate, the model call, normalization, plan
// building, and plan execution for one delivery, plus the audit Run record
// persisted for each of them.
package triage
