// Package identity supplies holder identity for lock acquisition.
package identity

import (
	"os"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/pathutil"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/uuidutil"
)

// WorkerIDEnv overrides the configured worker id for multi-worker setups.
const WorkerIDEnv = "CHADGI_WORKER_ID"

// Current builds the identity for a new processing session: a fresh session
// id plus the diagnostic fields of this process. workerID and repoName come
// from configuration; CHADGI_WORKER_ID wins over the configured worker id.
func Current(workerID, repoName string) (model.HolderIdentity, error) {
	if env := os.Getenv(WorkerIDEnv); env != "" {
		workerID = env
	}
	if workerID != "" {
		if err := pathutil.ValidateName(workerID); err != nil {
			return model.HolderIdentity{}, err
		}
	}
	if repoName != "" {
		if err := pathutil.ValidateName(repoName); err != nil {
			return model.HolderIdentity{}, err
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return model.HolderIdentity{
		SessionID: uuidutil.NewV4(),
		PID:       os.Getpid(),
		Hostname:  hostname,
		WorkerID:  workerID,
		RepoName:  repoName,
	}, nil
}
