//go:build !unix

package cli

import "os"

// Фокус-сигнала нет, демон полагается на опрос health
var focusSignal os.Signal
