package strategies_test

import (
	"strings"
	"testing"
	"time"

	"github.com/9seconds/geocoder/strategies"
	"github.com/stretchr/testify/suite"
)

type RistrettoTestSuite struct {
	StrategyTestSuite

	r *strategies.Ristretto
}

func (suite *RistrettoTestSuite) SetupTest() {
	suite.StrategyTestSuite.SetupTest()

	r, err := strategies.NewRistretto(100, time.Minute)

	suite.Require().NoError(err)

	suite.r = r
	suite.strategy = r
}

func (suite *RistrettoTestSuite) TearDownTest() {
	suite.r.Close()
}

func TestRistrettoZeroSize(t *testing.T) {
	_, err := strategies.NewRistretto(0, time.Minute)
	if err == nil {
		t.Fatal("error is expected")
	}

	if count := strings.Count(err.Error(), "cannot create ristretto cache"); count != 1 {
		t.Errorf("error is wrapped %d times: %v", count, err)
	}
}

func TestRistretto(t *testing.T) {
	suite.Run(t, &RistrettoTestSuite{})
}
