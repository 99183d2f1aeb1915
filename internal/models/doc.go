// Package models defines the core domain models for the wallet backend.
//
// The models mirror the two systems of record this service mediates
// between: the document store (Request, User, Charge) and the external
// settlement rail, which owns balances and transaction history and is
// never modeled locally beyond opaque payloads.
//
// # Design Principles
//
//  1. The store assigns IDs and timestamps; models carry them but never
//     generate them.
//  2. Request status only moves along the legal edges of the request
//     state machine; status writes are conditional on the expected prior
//     status.
//  3. Users are provisioned upstream; this service reads them and flips
//     their verification flag but never creates them in production paths.
package models
