package norand

import (
	crand "crypto/rand"
	"math/rand" // want `import of math/rand is not allowed, use crypto/rand`
)

func Pick(n int) int {
	_, _ = crand.Read(make([]byte, 1))
	return rand.Intn(n)
}
