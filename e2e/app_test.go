package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) login() {
	// Wait for login form
	err := suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	// Fill in credentials
	err = suite.page.Locator("input[name=username]").Fill("testuser")
	require.NoError(suite.T(), err, "failed to fill username")

	err = suite.page.Locator("input[name=password]").Fill("testpass123")
	require.NoError(suite.T(), err, "failed to fill password")

	// Submit login
	err = suite.page.Locator(".login-btn").Click()
	require.NoError(suite.T(), err, "failed to click login")

	// Wait for redirect to the dashboard
	err = suite.expect.Locator(suite.page.Locator(".dashboard-screen")).ToBeVisible()
	require.NoError(suite.T(), err, "did not redirect to dashboard after login")
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	// Login
	suite.login()

	// Verify dashboard summary cards
	err := suite.expect.Locator(suite.page.Locator(".summary-cards .card small").First()).ToHaveText("Total Income")
	require.NoError(suite.T(), err, "dashboard assertion failed")

	// Go to transactions page
	_, err = suite.page.Goto(appURL + "/transactions")
	require.NoError(suite.T(), err, "failed to open transactions page")

	err = suite.expect.Locator(suite.page.Locator("#transaction-form")).ToBeVisible()
	require.NoError(suite.T(), err, "transaction form not visible")

	// Add an expense
	err = suite.page.Locator("input[name=amount]").Fill("12.50")
	require.NoError(suite.T(), err, "failed to fill amount")

	err = suite.page.Locator("input[name=category]").Fill("Dining")
	require.NoError(suite.T(), err, "failed to fill category")

	_, err = suite.page.Locator("select[name=type]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"expense"},
	})
	require.NoError(suite.T(), err, "failed to select type")

	err = suite.page.Locator(".submit-btn").Click()
	require.NoError(suite.T(), err, "failed to submit transaction")

	// Verify it shows up in the list
	err = suite.expect.Locator(suite.page.Locator(".transaction-item")).ToHaveCount(1)
	require.NoError(suite.T(), err, "transaction item count mismatch")

	item := suite.page.Locator(".transaction-item").First()
	err = suite.expect.Locator(item.Locator(".transaction-category")).ToHaveText("Dining")
	require.NoError(suite.T(), err, "category mismatch")

	err = suite.expect.Locator(item.Locator(".transaction-amount")).ToContainText("12.50")
	require.NoError(suite.T(), err, "amount mismatch")

	// Dashboard reflects the new expense
	_, err = suite.page.Goto(appURL + "/dashboard")
	require.NoError(suite.T(), err, "failed to open dashboard")

	err = suite.expect.Locator(suite.page.Locator(".summary-cards .card .amount.expense")).ToContainText("12.50")
	require.NoError(suite.T(), err, "dashboard expense total mismatch")
}

func (suite *E2ETestSuite) TestUnauthenticatedRedirect() {
	_, err := suite.page.Goto(appURL + "/dashboard")
	require.NoError(suite.T(), err, "failed to navigate")

	// Without a session the dashboard bounces to the login page
	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "expected login form for unauthenticated visit")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
