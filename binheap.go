package binheap

var (
	Name    = "binheap"
	License = "MIT"
	Version = "0.1.0"
)
