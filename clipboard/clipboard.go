// Package clipboard provides guarded access to the system clipboard text.
package clipboard

import (
	"sync"

	atotto "github.com/atotto/clipboard"
)

var clipboardLock sync.Mutex

// Read returns the current clipboard text.
func Read() (string, error) {
	clipboardLock.Lock()
	defer clipboardLock.Unlock()
	return atotto.ReadAll()
}

// Write replaces the clipboard text.
func Write(text string) error {
	clipboardLock.Lock()
	defer clipboardLock.Unlock()
	return atotto.WriteAll(text)
}
