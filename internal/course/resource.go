package course

// Resource is the content attached to a module. The service sends one JSON
// object per variant; the variant is named by Type and only the fields that
// variant uses are populated.
type Resource struct {
	ID   int          `json:"id"`
	Type ResourceType `json:"resource_type"`

	// Lectures.
	Content               []string    `json:"content,omitempty"`
	Letter                string      `json:"letter,omitempty"`
	LetterAudio           string      `json:"letter_audio,omitempty"`
	WordAudios            []string    `json:"word_audios,omitempty"`
	LetterWritingSequence []string    `json:"letter_writing_sequence,omitempty"`
	VocabWords            []VocabWord `json:"vocab_words,omitempty"`

	// Dialect selection.
	Dialects []DialectOption `json:"dialects,omitempty"`

	// Fixed-length problem sets. A single letter pronunciation problem
	// carries Question/Letter/LetterAudio at the top level instead.
	Question     string       `json:"question,omitempty"`
	ProblemCount int          `json:"problem_count,omitempty"`
	Problems     []Problem    `json:"problems,omitempty"`
	Text         *ReadingText `json:"text,omitempty"`

	// Rotating vocab batches.
	SetLimit    int          `json:"set_limit,omitempty"`
	Dialect     *Dialect     `json:"dialect,omitempty"`
	ProblemSets []ProblemSet `json:"problem_sets,omitempty"`
}

// ProblemSet is one batch of a vocab resource.
type ProblemSet struct {
	ID           int       `json:"id"`
	SetNumber    int       `json:"set_number"`
	SetLimit     int       `json:"set_limit"`
	ProblemCount int       `json:"problem_count"`
	Gender       *Gender   `json:"gender,omitempty"`
	Dialect      *Dialect  `json:"dialect,omitempty"`
	Problems     []Problem `json:"problems"`
}

// Problem is a single graded question. Fields are populated per variant.
type Problem struct {
	ID                 int         `json:"id"`
	Question           string      `json:"question,omitempty"`
	QuestionAudio      string      `json:"question_audio,omitempty"`
	Word               string      `json:"word,omitempty"`
	PartialWord        string      `json:"partial_word,omitempty"`
	Letter             string      `json:"letter,omitempty"`
	Position           string      `json:"position,omitempty"`
	ReferenceWriting   string      `json:"reference_writing,omitempty"`
	WritingSequence    []string    `json:"writing_sequence,omitempty"`
	LetterList         []string    `json:"letter_list,omitempty"`
	WordAudio          string      `json:"word_audio,omitempty"`
	IncorrectWordAudio string      `json:"incorrect_word_audio,omitempty"`
	AnswerChoices      []string    `json:"answer_choices,omitempty"`
	CorrectAnswer      string      `json:"correct_answer,omitempty"`
	VocabWord          *VocabWord  `json:"vocab_word,omitempty"`
	VocabWords         []VocabWord `json:"vocab_words,omitempty"`
}

// VocabWord is a vocabulary entry.
type VocabWord struct {
	ID         int      `json:"id"`
	Number     int      `json:"number"`
	Word       string   `json:"word"`
	Meaning    string   `json:"meaning"`
	Language   string   `json:"language,omitempty"`
	Dialect    *Dialect `json:"dialect,omitempty"`
	VocabAudio string   `json:"vocab_audio,omitempty"`
}

// ReadingText is the passage shared by reading-comprehension problems.
type ReadingText struct {
	ID    int      `json:"id"`
	Title string   `json:"text_title"`
	Body  []string `json:"text"`
}

// BatchAt returns the 1-based vocab batch n.
func (r *Resource) BatchAt(n int) (*ProblemSet, bool) {
	if n < 1 || n > len(r.ProblemSets) {
		return nil, false
	}
	return &r.ProblemSets[n-1], true
}

// SpeakingSet picks the speaking batch for a dialect and gender. A batch
// without a gender matches any learner.
func (r *Resource) SpeakingSet(dialect Dialect, gender Gender) (*ProblemSet, bool) {
	for i := range r.ProblemSets {
		ps := &r.ProblemSets[i]
		if ps.Dialect == nil || *ps.Dialect != dialect {
			continue
		}
		if ps.Gender == nil || *ps.Gender == "" || *ps.Gender == gender {
			return ps, true
		}
	}
	return nil, false
}

// CorrectChoice returns the expected answer for a choice problem.
func (p Problem) CorrectChoice() string {
	if p.VocabWord != nil {
		return p.VocabWord.Word
	}
	return p.CorrectAnswer
}
