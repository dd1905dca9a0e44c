// Package models defines the core domain models for the Savora backend.
//
// # Money pools
//
// A User owns three money pools that the ledger keeps consistent:
//   - WalletBalance: spendable balance, topped up from linked accounts
//   - SavingsBalance: denormalized sum of all goal CurrentAmounts
//   - per-goal CurrentAmount on each SavingGoal
//
// A Group owns a fourth pool, PoolAmount, holding the contributions
// collected since the last payout.
//
// Money never moves between pools except through the ledger's atomic
// operations; no model method mutates a balance directly.
//
// # Amounts
//
// All amounts are shopspring decimal.Decimal, never floats. Repeated
// transfers must not accumulate rounding drift.
//
// # Ownership
//
// A User exclusively owns its Transaction history, SavingGoal set,
// LinkedAccount set and Notifications. A Group is shared by its members
// but administratively owned by its creator; PayoutRequests and
// ChatMessages belong to their Group.
package models
