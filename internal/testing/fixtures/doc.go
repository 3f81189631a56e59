// Package fixtures provides lead data for tests.
//
// Quiz builds request bodies; the Factory stores leads directly:
//
//	body := fixtures.Quiz(fixtures.WithConditions("fibromyalgia"))
//
//	f := fixtures.New(tdb.Store)
//	quiz := f.CreateQuiz(t, fixtures.WithRecentPain())
//	entry := f.CreateWaitingListEntry(t, quiz)
package fixtures
