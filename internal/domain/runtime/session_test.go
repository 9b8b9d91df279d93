package runtime

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

// strictConn flags any two writes that reach it concurrently, the way
// a gorilla connection would panic.
type strictConn struct {
	writing int32
	overlap int32
}

func (c *strictConn) WriteJSON(_ any) error {
	return c.write()
}

func (c *strictConn) WriteControl(_ int, _ []byte, _ time.Time) error {
	return c.write()
}

func (c *strictConn) Close() error { return nil }

func (c *strictConn) write() error {
	if !atomic.CompareAndSwapInt32(&c.writing, 0, 1) {
		atomic.StoreInt32(&c.overlap, 1)
		return nil
	}
	time.Sleep(time.Millisecond)
	atomic.StoreInt32(&c.writing, 0)
	return nil
}

func TestSessionSerializesSendsAndPings(t *testing.T) {
	conn := &strictConn{}
	session := NewSession(uuid.New(), uuid.New(), "alice", conn)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := session.Send("payload"); err != nil {
					t.Errorf("Send: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := session.Ping(); err != nil {
					t.Errorf("Ping: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&conn.overlap) != 0 {
		t.Fatal("connection saw two concurrent writers")
	}
}
