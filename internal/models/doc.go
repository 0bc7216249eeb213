// Package models defines the core domain entities for Potluck.
//
// # Entities
//
//   - User: registered account; the birthday field drives birthday-group deadlines
//   - Group: a recurring obligation pool (birthday, subscription, or general)
//   - Membership: a user's role and standing within a group
//   - Contribution: one (group, contributor, period) obligation with its status
//   - Transaction: an immutable ledger entry (debit, credit, or withdrawal)
//   - Wallet: per-user, per-currency balance mutated only alongside transactions
//   - Report: a moderation report feeding score penalties
//
// # Design principles
//
//  1. One Contribution entity tagged by the group's type replaces per-type
//     tables; period-key derivation is the only thing that varies per type.
//  2. Statuses are closed types with explicit transition relations, not free
//     strings.
//  3. Amounts are int64 cents in a single settled currency per group.
//  4. Models hold no clock: "now" is always passed in by the caller.
package models
