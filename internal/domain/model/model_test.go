package model_test

import (
	"testing"
	"time"

	model "github.com/okian/fitquest/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProfileUpdateApply(t *testing.T) {
	Convey("Given a user with a profile", t, func() {
		age := 30
		u := model.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", Age: &age, FitnessGoal: model.GoalMaintain}

		Convey("Only the set fields are changed", func() {
			first := "Grace"
			weight := 72.5
			model.ProfileUpdate{FirstName: &first, CurrentWeight: &weight}.Apply(&u)

			So(u.FirstName, ShouldEqual, "Grace")
			So(u.LastName, ShouldEqual, "Lovelace")
			So(*u.Age, ShouldEqual, 30)
			So(*u.CurrentWeight, ShouldEqual, 72.5)
			So(u.FitnessGoal, ShouldEqual, model.GoalMaintain)
		})

		Convey("An empty update is a no-op", func() {
			before := u
			model.ProfileUpdate{}.Apply(&u)
			So(u, ShouldResemble, before)
		})
	})
}

func TestDay(t *testing.T) {
	Convey("Day truncates to midnight UTC", t, func() {
		loc := time.FixedZone("UTC+9", 9*3600)
		got := model.Day(time.Date(2025, time.June, 2, 3, 30, 0, 0, loc))
		So(got, ShouldEqual, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	})
}
