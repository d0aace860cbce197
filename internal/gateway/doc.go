// Package gateway implements the NFS-facing protocol cores of the L5
// gateway plane: the MOUNT protocol handler, the server-side attribute
// cache and write-commit tracker that back NFSv3 semantics, a pNFS
// layout server, and AUTH_SYS/bearer-token authentication. It sits in
// front of internal/metadata the way internal/clientplane sits in front
// of it for the FUSE upcall path.
package gateway
