package session

import "sync"

// answerRegister holds the latest final answer. Later answers overwrite
// earlier ones.
type answerRegister struct {
	mu   sync.Mutex
	text string
	set  bool
}

func (r *answerRegister) Set(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	r.set = true
}

func (r *answerRegister) Get() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, r.set
}
