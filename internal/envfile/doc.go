// Package envfile materializes resolved secrets into something a child
// process can open by path.
//
// Three artifact shapes exist behind the Artifact interface:
//
//   - Adopted file: the secrets file already existed on disk, so it is
//     used as-is. Cleanup is a no-op; keyrun never deletes a file it did
//     not create.
//   - File: the blob is written to the configured path with permissions
//     0600. Cleanup deletes the file, unless a keep marker (the artifact
//     path plus ".keep") exists at cleanup time. The marker is only ever
//     consulted, never created or removed, by cleanup.
//   - Pipe: the blob is pushed through an anonymous pipe whose read end
//     the child inherits as fd 3, reachable as /dev/fd/3. Nothing touches
//     the filesystem and the content can be read exactly once. Platforms
//     without /dev/fd get ErrPipeUnsupported instead of a silent fall
//     back to file mode.
//
// Cleanup is idempotent. Callers register it with defer immediately after
// materialization so it runs on normal exits, on errors, and (combined
// with the run command's signal handling) on interruption.
package envfile
