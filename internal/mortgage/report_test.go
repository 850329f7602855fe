// internal/mortgage/report_test.go
package mortgage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_OrderAndGrouping(t *testing.T) {
	r := NewReport()
	r.Add(FieldDepositAmount, "first")
	r.Add(FieldPropertyValue, "second")
	r.Add(FieldDepositAmount, "third")

	assert.False(t, r.Empty())
	assert.Equal(t, []Field{FieldDepositAmount, FieldPropertyValue}, r.Fields())
	assert.Equal(t, []string{"first", "third"}, r.Messages(FieldDepositAmount))
	assert.Equal(t, map[string][]string{
		"depositamt":  {"first", "third"},
		"propertyval": {"second"},
	}, r.Map())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"depositamt":["first","third"],"propertyval":["second"]}`, string(data))
}

func TestReport_NilIsEmpty(t *testing.T) {
	var r *Report
	assert.True(t, r.Empty())
	assert.Nil(t, r.Fields())
	assert.Empty(t, r.Map())

	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestReport_CopiesAreDetached(t *testing.T) {
	r := NewReport()
	r.Add(FieldApplicant, "Applicant does not exist")

	msgs := r.Messages(FieldApplicant)
	msgs[0] = "changed"
	r.Map()["applicant"][0] = "changed"

	assert.Equal(t, []string{"Applicant does not exist"}, r.Messages(FieldApplicant))
}

func TestReport_Error(t *testing.T) {
	a := NewReport()
	a.Add(FieldFirstName, "First Name is required")
	a.Add(FieldEmail, "Email is required")
	a.Add(FieldFirstName, "again")

	assert.Equal(t, []Field{FieldFirstName, FieldEmail}, a.Fields())
	assert.Equal(t, []string{"First Name is required", "again"}, a.Messages(FieldFirstName))
	assert.Equal(t, "validation failed: firstName: First Name is required; again, email: Email is required", a.Error())

	var err error = a
	assert.Error(t, err)
}

func TestReport_ZeroValueUsable(t *testing.T) {
	var r Report
	r.Add(FieldLTV, "LTV cannot be negative")
	assert.Equal(t, []string{"LTV cannot be negative"}, r.Messages(FieldLTV))
}
