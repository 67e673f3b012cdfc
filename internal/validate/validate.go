// Package validate checks roster and answer input before it is sent to the
// backend. Failures are reported to the user as warnings.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/state"
)

const MaxStudentNameLength = 20

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "Please enter the student name"

	maxTag  = "max"
	maxText = "Student name cannot exceed 20 characters"

	uniqueStudentTag  = "unique_student"
	uniqueStudentText = "This student already exists"

	answerNotBlankTag  = "answer_notblank"
	answerNotBlankText = "Please enter an answer"
)

type Notifier interface {
	Notify(message string, severity notify.Severity)
}

type studentInput struct {
	Name string `json:"name" validate:"notblank,max=20,unique_student"`
}

type answerInput struct {
	Answer string `json:"answer" validate:"answer_notblank"`
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	store      *state.ClassroomStore
	notifier   Notifier
}

// New builds a Validator. Duplicate names are checked against store; a nil
// store means no student exists yet.
func New(store *state.ClassroomStore, notifier Notifier) *Validator {
	v := &Validator{
		validate: validator.New(),
		store:    store,
		notifier: notifier,
	}
	_en := en.New()
	uni := ut.New(_en, _en)
	v.translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)

	// Use JSON tag names for errors instead of Go struct names.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = v.validate.RegisterValidation(answerNotBlankTag, notBlankValidation)
	_ = v.validate.RegisterValidation(uniqueStudentTag, v.uniqueStudentValidation)

	v.registerTranslation(notBlankTag, notBlankText)
	v.registerTranslation(maxTag, maxText)
	v.registerTranslation(uniqueStudentTag, uniqueStudentText)
	v.registerTranslation(answerNotBlankTag, answerNotBlankText)
	return v
}

// registerTranslation overrides the message for tag with a fixed text.
func (v *Validator) registerTranslation(tag, text string) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// StudentName reports whether name can be added to the roster. On failure a
// warning is shown and false returned.
func (v *Validator) StudentName(name string) bool {
	return v.check(studentInput{Name: name})
}

// Answer reports whether answer is non-blank. On failure a warning is shown
// and false returned.
func (v *Validator) Answer(answer string) bool {
	return v.check(answerInput{Answer: answer})
}

func (v *Validator) check(input interface{}) bool {
	msg := v.message(v.validate.Struct(input))
	if msg == "" {
		return true
	}
	if v.notifier != nil {
		v.notifier.Notify(msg, notify.Warning)
	}
	return false
}

func (v *Validator) message(err error) string {
	if err == nil {
		return ""
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return verrs[0].Translate(v.translator)
	}
	return err.Error()
}

// Custom Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func (v *Validator) uniqueStudentValidation(fl validator.FieldLevel) bool {
	if v.store == nil {
		return true
	}
	return !v.store.HasStudent(fl.Field().String())
}
