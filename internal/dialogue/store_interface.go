package dialogue

// Store persists in-progress dialogues by identity. Entries past their
// ExpiresAt are dropped and reported through the OnExpire callback.
type Store interface {
	Save(d *Dialogue)
	Get(id string) (*Dialogue, bool)
	Delete(id string)
	OnExpire(func(id string))
	Close() error
}
