package course

// CourseProgress is a learner's position in one course. The service owns it;
// the client only applies what mutation responses return.
type CourseProgress struct {
	ID             int        `json:"id"`
	CourseName     CourseName `json:"course_name"`
	Language       Language   `json:"language"`
	Dialect        *Dialect   `json:"dialect"`
	DefaultDialect *Dialect   `json:"default_dialect"`
	TotalModules   int        `json:"total_modules"`

	// CurrModule is the 1-based frontier module number.
	CurrModule int `json:"curr_module"`

	// ProblemCounter is either the current index in a fixed set or the
	// number of distinct words credited toward a vocab threshold.
	ProblemCounter int `json:"problem_counter"`

	// CurrentVocabProblemSet is the 1-based active vocab batch.
	CurrentVocabProblemSet int `json:"current_vocab_problem_set"`

	CoveredWords map[string]int `json:"covered_words"`
}

// DialectOrDefault returns the chosen dialect, falling back to the course
// default. The empty string means neither is set.
func (p CourseProgress) DialectOrDefault() Dialect {
	if p.Dialect != nil {
		return *p.Dialect
	}
	if p.DefaultDialect != nil {
		return *p.DefaultDialect
	}
	return ""
}

// HasDialect reports whether the learner has completed dialect selection.
func (p CourseProgress) HasDialect() bool {
	return p.Dialect != nil && *p.Dialect != ""
}

// Completed reports whether every module of the course has been passed.
func (p CourseProgress) Completed() bool {
	return p.TotalModules > 0 && p.CurrModule > p.TotalModules
}

// Clone returns a deep copy.
func (p CourseProgress) Clone() CourseProgress {
	out := p
	if p.Dialect != nil {
		d := *p.Dialect
		out.Dialect = &d
	}
	if p.DefaultDialect != nil {
		d := *p.DefaultDialect
		out.DefaultDialect = &d
	}
	if p.CoveredWords != nil {
		out.CoveredWords = make(map[string]int, len(p.CoveredWords))
		for k, v := range p.CoveredWords {
			out.CoveredWords[k] = v
		}
	}
	return out
}

// DialectPtr is a helper for building progress values.
func DialectPtr(d Dialect) *Dialect { return &d }
