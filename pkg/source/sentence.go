package source

// Sentence is a tokenised sentence. Its length is the number of words.
type Sentence struct {
	ID    string   `json:"id,omitempty" msgpack:"id,omitempty"`
	Words []string `json:"words" msgpack:"words"`
	Tags  []string `json:"tags,omitempty" msgpack:"tags,omitempty"`
}

// Len returns the number of words.
func (s Sentence) Len() int {
	return len(s.Words)
}
