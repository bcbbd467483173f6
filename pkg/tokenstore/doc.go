// Package tokenstore persists OAuth token records for command-line programs.
//
// A token record is an opaque JSON object (Token) stored under the key
// "{provider_id}/{client_id}". The OAuth flow in package oauth is the only
// code that interprets the record's fields.
//
// # Backends
//
//   - FileStore: a single JSON file, by default tokens.json inside the
//     OS-specific user config directory (see DefaultPath)
//   - KeyringStore: one entry per token in the OS credential vault
//   - MemoryStore: process memory only, useful for tests and embedding
//   - NoneStore: never persists, every lookup misses
//
// All backend failures surface as *StorageError.
//
// # Usage
//
//	path, err := tokenstore.DefaultPath("")
//	store := tokenstore.NewFileStore(path)
//
//	tok, err := store.GetToken("github", clientID)
//	err = store.SetToken("github", clientID, nil) // delete
package tokenstore
