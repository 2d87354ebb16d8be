// Package models defines the persisted domain models for settleup.
//
// # Models
//
//   - User: a person known to the service, provisioned by the external
//     sign-in flow (Google OAuth happens outside this service)
//   - Group: a set of users sharing expenses
//   - Expense: one ledger entry in a group, either an EXPENSE or an INCOME
//
// Balances and settlements are not models: they are recomputed on every
// request from a group's expenses (see internal/calculator) and never stored.
//
// # Design Principles
//
//  1. Money is stored as integer cents (money.Cents); floats appear only on the wire
//  2. Relationships are ID strings, not pointers
//  3. Month and Year on an expense are always derived from Date (UTC)
package models
