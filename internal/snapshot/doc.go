// Package snapshot exposes the public snapshot operations for one document.
//
// A Manager is bound to a single Document and composes the host's Collector,
// the packer, and the document's sidecar store:
//
//	save  = Collector -> packer.Pack -> store.Insert (one transaction)
//	load  = store.FetchBlobs -> packer.Unpack -> overwrite files -> Reloader
//	list, rename, delete touch only the store
//
// Save is atomic. Load is not: each file is replaced on its own (write to a
// temporary file, then rename), so a failure part way leaves earlier files
// restored and reports PARTIAL_RESTORE with the paths that were not written.
//
// A symlinked file is written through, keeping the link.
//
// Operations are synchronous. Any number of Managers may read a store at
// once; a writer needs it alone, and the store's advisory lock turns a
// conflicting opener into STORE_UNWRITABLE.
package snapshot
