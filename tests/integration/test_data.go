package integration

import (
	"fmt"
	"time"
)

// TestUser generates unique test user credentials using timestamp
func TestUser(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123"
	return
}

// TestAccountNumber generates a unique 10-digit account number
func TestAccountNumber(seq int) string {
	return fmt.Sprintf("%010d", time.Now().Unix()%1000000*1000+int64(seq))
}
