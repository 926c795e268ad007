package service

import (
	"bytes"
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/util"
	"math"
	"sort"
	"strings"
)

// ScoreResult 一份答卷的评分结果
type ScoreResult struct {
	Answers  []model.AnswerResult
	Awarded  int
	Possible int
	Score    int
	Status   model.SubmissionStatus
	Passed   *bool
}

// ScoreExam 按考试题目顺序传入 questions 进行评分，无副作用
func ScoreExam(exam *model.Exam, questions []model.Question, answers []model.SubmittedAnswer) (*ScoreResult, error) {
	byQuestion, err := indexAnswers(exam, answers)
	if err != nil {
		return nil, err
	}

	res := &ScoreResult{Answers: make([]model.AnswerResult, 0, len(questions))}
	pending := exam.GradingMethod != model.GradingAuto

	for i := range questions {
		q := &questions[i]
		points := q.PointValue()
		ar := model.AnswerResult{
			QuestionID:     q.ID,
			QuestionType:   q.Type,
			PossiblePoints: points,
		}
		res.Possible += points

		raw, answered := byQuestion[q.ID]
		if answered {
			ar.Answer = raw
		}

		switch {
		case !q.Type.AutoGradable():
			ar.Status = model.AnswerPendingManualReview
			pending = true
		case !answered:
			ar.Status = model.AnswerUnanswered
		case answersMatch(q.Type, raw, q.CorrectAnswer):
			ar.Status = model.AnswerCorrect
			ar.AwardedPoints = points
			res.Awarded += points
		default:
			ar.Status = model.AnswerIncorrect
		}

		res.Answers = append(res.Answers, ar)
	}

	if res.Possible > 0 {
		res.Score = int(math.Round(float64(res.Awarded) * 100 / float64(res.Possible)))
	}

	if pending {
		res.Status = model.SubmissionPendingReview
	} else {
		res.Status = model.SubmissionGraded
		passed := res.Score >= exam.PassScore
		res.Passed = &passed
	}

	return res, nil
}

// indexAnswers 忽略 null 答案，拒绝不属于考试或重复的题目 ID
func indexAnswers(exam *model.Exam, answers []model.SubmittedAnswer) (map[uint]json.RawMessage, error) {
	inExam := make(map[uint]bool, len(exam.QuestionIDs))
	for _, id := range exam.QuestionIDs {
		inExam[id] = true
	}

	out := make(map[uint]json.RawMessage, len(answers))
	seen := make(map[uint]bool, len(answers))
	for _, a := range answers {
		if !inExam[a.QuestionID] {
			return nil, util.Validationf("question %d is not part of exam %d", a.QuestionID, exam.ID)
		}
		if seen[a.QuestionID] {
			return nil, util.Validationf("question %d answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = true

		trimmed := bytes.TrimSpace(a.Answer)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		out[a.QuestionID] = a.Answer
	}
	return out, nil
}

type valueKind int

const (
	kindInvalid valueKind = iota
	kindScalar
	kindList
	kindPairs
)

type answerValue struct {
	kind  valueKind
	list  []string
	pairs map[string]string
}

// blank 为真表示答案为空，或任一元素归一化后为空串
func (v answerValue) blank() bool {
	switch v.kind {
	case kindScalar, kindList:
		if len(v.list) == 0 {
			return true
		}
		for _, s := range v.list {
			if s == "" {
				return true
			}
		}
	case kindPairs:
		if len(v.pairs) == 0 {
			return true
		}
		for k, s := range v.pairs {
			if k == "" || s == "" {
				return true
			}
		}
	}
	return false
}

func answersMatch(t model.QuestionType, submitted, correct json.RawMessage) bool {
	got := parseAnswerValue(submitted)
	want := parseAnswerValue(correct)
	if got.kind == kindInvalid || want.kind == kindInvalid || want.blank() {
		return false
	}

	if got.kind == kindPairs || want.kind == kindPairs {
		if got.kind != want.kind || len(got.pairs) != len(want.pairs) {
			return false
		}
		for k, v := range want.pairs {
			if gv, ok := got.pairs[k]; !ok || gv != v {
				return false
			}
		}
		return true
	}

	a, b := got.list, want.list
	if len(a) != len(b) {
		return false
	}
	if t == model.MultipleChoice {
		a = sortedCopy(a)
		b = sortedCopy(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// parseAnswerValue 解析 JSON 答案，标量视为单元素列表，"A" 与 ["A"] 等价
func parseAnswerValue(raw json.RawMessage) answerValue {
	if len(bytes.TrimSpace(raw)) == 0 {
		return answerValue{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return answerValue{}
	}

	switch val := v.(type) {
	case []interface{}:
		list := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := scalarText(item)
			if !ok {
				return answerValue{}
			}
			list = append(list, s)
		}
		return answerValue{kind: kindList, list: list}
	case map[string]interface{}:
		pairs := make(map[string]string, len(val))
		for k, item := range val {
			s, ok := scalarText(item)
			if !ok {
				return answerValue{}
			}
			pairs[normalizeText(k)] = s
		}
		return answerValue{kind: kindPairs, pairs: pairs}
	default:
		s, ok := scalarText(val)
		if !ok {
			return answerValue{}
		}
		return answerValue{kind: kindScalar, list: []string{s}}
	}
}

func scalarText(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return normalizeText(val), true
	case json.Number:
		return val.String(), true
	case bool:
		if val {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

// normalizeText 转小写、去首尾空白并合并连续空白
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
