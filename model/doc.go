// Package model defines stable boundary types for the title-transfer
// protocol.
//
// These structs are the only types intended for direct JSON serialization by
// consumers. Ledger and custody authority is unaffected by any projection:
// the ledger's records and the custody service's holder map remain the
// systems of record, and everything here is a client-side view of them.
package model
