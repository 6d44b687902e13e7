//go:build windows

package ollama

import "os"

func interruptSignal() os.Signal { return os.Kill }
