// Package config loads and merges the layered aictl configuration.
//
// Two scopes exist: the global document (~/.aiconfig/config.yaml) and an
// optional project document (.aiconfig.yaml, found by upward search). Both
// are YAML with the same shape. Loading merges them into one
// [EffectiveConfig], built fresh on every invocation and never persisted.
//
// # Merge strategies
//
// Merging is a pure function of the two documents. For mapping-valued
// sections (mcp_servers, clients) entries are unioned key-by-key. When both
// scopes define the same entry, the project entry's "strategy" field
// decides:
//
//   - "replace": the project entry fully supersedes the global entry; no
//     sub-key is inherited.
//   - absent or "append" (the default): sub-keys are merged with project
//     values winning on collision and global values filling the gaps.
//
// Sequence-valued sections (default_clients) concatenate project entries
// after global entries, without deduplication.
//
// A malformed document is never partially applied: parsing fails with a
// [*ParseError] carrying the offending file path, and the whole load
// aborts.
package config
