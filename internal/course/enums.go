package course

import "strings"

// Language is a language offered by the service.
type Language string

const (
	LanguageArabic  Language = "Arabic"
	LanguageSpanish Language = "Spanish"
	LanguageFrench  Language = "French"
)

// Dialect is a regional variety of a language.
type Dialect string

const (
	DialectMSA       Dialect = "MSA"
	DialectLevantine Dialect = "Levantine"
	DialectEgyptian  Dialect = "Egyptian"
)

// CourseName identifies a course within the catalogue.
type CourseName string

const (
	CourseBeginnerArabic     CourseName = "Beginner Arabic"
	CourseIntermediateArabic CourseName = "Intermediate Arabic"
	CourseAdvancedArabic     CourseName = "Advanced Arabic"
)

// Gender selects voice-tutor problem variants.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender matches s against the known genders ignoring case.
func ParseGender(s string) (Gender, bool) {
	for _, g := range []Gender{GenderMale, GenderFemale} {
		if strings.EqualFold(strings.TrimSpace(s), string(g)) {
			return g, true
		}
	}
	return "", false
}

// ResourceType is the discriminant carried by every resource.
type ResourceType string

const (
	LetterSpeakingLecture       ResourceType = "Letter Speaking Lecture"
	LetterWritingLecture        ResourceType = "Letter Writing Lecture"
	VocabLecture                ResourceType = "Vocab Lecture"
	InfoLecture                 ResourceType = "Info Lecture"
	DialectSelection            ResourceType = "Dialect Selection"
	LetterPronunciationProblem  ResourceType = "Letter Pronounciation Problem"
	WordPronunciationProblemSet ResourceType = "Word Pronounciation Problem Set"
	DiscriminationProblemSet    ResourceType = "Discrimination Problem Set"
	LetterRecognitionProblemSet ResourceType = "Letter Recognition Problem Set"
	LetterWritingProblemSet     ResourceType = "Letter Writing Problem Set"
	LetterJoiningProblemSet     ResourceType = "Letter Joining Problem Set"
	DictationProblemSet         ResourceType = "Dictation Problem Set"
	VocabReadingProblemSets     ResourceType = "Vocab Reading Problem Sets"
	VocabListeningProblemSets   ResourceType = "Vocab Listening Problem Sets"
	VocabSpeakingProblemSets    ResourceType = "Vocab Speaking Problem Sets"
	ReadingComprehensionMCQ     ResourceType = "Reading Comprehension MCQ Problem Set"
	ReadingComprehensionWriting ResourceType = "Reading Comprehension Writing Problem Set"
	UnitTest                    ResourceType = "Unit Test"
	FinalExam                   ResourceType = "Final Exam"
)

// IsLecture reports whether the type is a lecture.
func (t ResourceType) IsLecture() bool {
	switch t {
	case LetterSpeakingLecture, LetterWritingLecture, VocabLecture, InfoLecture:
		return true
	}
	return false
}

// IsVocabSets reports whether the type carries rotating vocabulary batches.
func (t ResourceType) IsVocabSets() bool {
	switch t {
	case VocabReadingProblemSets, VocabListeningProblemSets, VocabSpeakingProblemSets:
		return true
	}
	return false
}
