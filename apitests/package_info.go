// Package apitests contains the AutoLearn JP API contract tests themselves and their
// supporting API.
//
// Infrastructure that is not specific to this service, such as the test context, failure
// classification and result reporting, is in the lower-level framework package. Talking
// HTTP is the job of the client package.
//
// Every test establishes the session state it needs (logging out, or logging in as a
// particular role) and seeds any data it reads, so no test depends on what an earlier test
// left behind. The order of the suite is fixed only so that output is reproducible.
package apitests
