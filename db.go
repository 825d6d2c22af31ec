package herald

type Database interface {
	Open() error
	Close() error
}
