// Package audit keeps a local history of the certificates vctool creates.
//
// Every keygen, pubkey and passwd run appends one JSON object to
//
//	$XDG_CONFIG_HOME/vctool/history.jsonl
//
// recording when it happened, who ran it, the entity id, the suite, the
// file written and whether it was encrypted. Key material and passphrases
// are never logged.
//
// Logging is best-effort. If the log cannot be written the command still
// succeeds. ReadEntries skips malformed lines so a partial write does not
// hide the rest of the history.
package audit
