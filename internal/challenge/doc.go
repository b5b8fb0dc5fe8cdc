// Package challenge implements the voice challenge-response engine: phrase
// generation, spoken-response normalization, per-tenant pending-challenge
// state, and time-boxed, attempt-boxed validation.
package challenge
