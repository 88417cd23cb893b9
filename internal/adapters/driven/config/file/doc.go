// Package file persists configuration and prompts on the local
// filesystem: a TOML-backed ConfigStore and a PromptStore serving
// user-editable templates layered over embedded defaults.
package file
