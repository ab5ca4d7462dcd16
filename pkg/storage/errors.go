package storage

type storageError string

const (
	ErrNotFound      = storageError("not found")
	ErrAlreadyExists = storageError("already exists")
	ErrTxFinished    = storageError("transaction already finished")
)

func (e storageError) Error() string {
	return string(e)
}
