// Package postgreswrapper selects the database adapter for integration tests
// via the ADAPTER_TYPE environment variable and provides direct table access
// for assertions on the journal and read model tables.
package postgreswrapper
