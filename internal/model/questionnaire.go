package model

// QuestionnaireAnswer is one entry of a patient intake questionnaire.
// QuestionNumber is a dense 1..N sequence matching slice position; the
// append/remove helpers below are the only sanctioned ways to edit a
// questionnaire so the numbering never gaps.
type QuestionnaireAnswer struct {
	ID             string `json:"id"`
	QuestionNumber int    `json:"questionNumber"`
	QuestionText   string `json:"questionText"`
	Answer         string `json:"answer,omitempty"`
}

// AppendQuestion adds a new question numbered len+1.
func AppendQuestion(qs []QuestionnaireAnswer, id, text string) []QuestionnaireAnswer {
	return append(qs, QuestionnaireAnswer{
		ID:             id,
		QuestionNumber: len(qs) + 1,
		QuestionText:   text,
	})
}

// RemoveQuestion drops the answer with the given id and renumbers the
// remainder 1..N. Unknown ids leave the slice unchanged.
func RemoveQuestion(qs []QuestionnaireAnswer, id string) []QuestionnaireAnswer {
	out := make([]QuestionnaireAnswer, 0, len(qs))
	for _, q := range qs {
		if q.ID == id {
			continue
		}
		out = append(out, q)
	}
	if len(out) == len(qs) {
		return qs
	}
	return RenumberQuestions(out)
}

// RenumberQuestions rewrites QuestionNumber to match slice position.
func RenumberQuestions(qs []QuestionnaireAnswer) []QuestionnaireAnswer {
	for i := range qs {
		qs[i].QuestionNumber = i + 1
	}
	return qs
}
