package store

// Drop is a journaled transport event that was not applied.
type Drop struct {
	ID        int64
	Identity  string
	Topic     string
	Reason    string
	Payload   []byte
	CreatedAt int64
}
