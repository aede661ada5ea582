/*
Package status writes published documents and tracks what happened to them.

🎯 Purpose:
- Writes rendered documents to the destination root
- Classifies every write as new, modified or unchanged
- Reports progress and per-file outcomes

🔄 Flow:
1. Receives rendered content from the publish orchestrator
2. Compares it with what is already on disk
3. Writes atomically (temp file + rename) when it differs
4. Tracks the file and calls the success callback

🤝 Interfaces:
- Writer: the external sink the orchestrator writes through
- StatusReporter: file tracking and progress
- FileFormatter: log message formatting

🔍 Example:

	mgr := status.New(destRoot)

	err := mgr.Write(ctx, "/pub/a.md", header+"\n"+body, func() {
		// counted as published
	})

	files, _ := mgr.ListFiles(ctx)
	status.WriteTable(os.Stdout, files)
*/
package status
