// Package launcher spawns the child process that consumes the secrets
// artifact.
//
// The child runs with the parent's stdin, stdout, and stderr attached
// unmodified, so interactive programs, pagers, and pipelines behave as if
// keyrun were not there. Exactly one environment variable is added on top
// of the inherited environment: KEYRUN_ENV_FILE, holding the artifact
// path. In pipe mode the artifact's read end is additionally inherited as
// file descriptor 3, which is what the /dev/fd/3 path refers to.
//
// The child's exit code is propagated verbatim; a child killed by signal
// N is reported as 128+N following shell convention. Non-zero exits are
// returned as ChildExitError, which the error taxonomy treats as "not a
// keyrun failure": nothing is printed for it, the code just flows through
// to the process exit.
package launcher
