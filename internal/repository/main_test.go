package repository

import (
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/vietanh2810/inventory-api/internal/repository/dao"
	"github.com/vietanh2810/inventory-api/internal/testutil/pgtest"
)

func TestMain(m *testing.M) {
	os.Exit(pgtest.Main(m))
}

func freshDB(t *testing.T) *gorm.DB {
	return pgtest.Fresh(t, dao.InitTables)
}
