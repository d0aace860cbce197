// Package replication implements the L5 cross-site replication plane:
// the topology of known remote sites and their replication role, and
// the conduit back-pressure controller that throttles or halts batch
// transfer between a paired local and remote site.
package replication
