package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/internal/service"
	"github.com/campusrec/achievement-api/pkg/config"
)

const routesTestSecret = "routes-test-secret"

type stubDepartmentRepo struct{}

func (stubDepartmentRepo) List(ctx context.Context) ([]models.Department, error) {
	return []models.Department{{ID: "d1", Name: "Computer Engineering", Code: "CE"}}, nil
}

func (stubDepartmentRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	return &models.Department{ID: id, Name: "Computer Engineering", Code: "CE"}, nil
}

func (stubDepartmentRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	return false, nil
}

func (stubDepartmentRepo) Create(ctx context.Context, department *models.Department) error { return nil }
func (stubDepartmentRepo) Update(ctx context.Context, department *models.Department) error { return nil }
func (stubDepartmentRepo) Delete(ctx context.Context, id string) error                     { return nil }

func buildHierarchyRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: routesTestSecret,
		AccessTokenExpiry: time.Hour,
	})

	r := gin.New()
	Register(r, "/api/v1", authSvc, Handlers{
		Auth:              NewAuthHandler(authSvc),
		User:              NewUserHandler(service.NewUserService(nil, nil, nil, nil)),
		Department:        NewDepartmentHandler(service.NewDepartmentService(stubDepartmentRepo{}, nil, nil, nil)),
		Program:           NewProgramHandler(service.NewProgramService(nil, nil, nil, nil, nil)),
		AcademicStructure: NewAcademicStructureHandler(service.NewAcademicStructureService(nil, nil, nil, nil, nil)),
		Division:          NewDivisionHandler(service.NewDivisionService(nil, nil, nil, nil, nil)),
		Batch:             NewBatchHandler(service.NewBatchService(nil, nil, nil, nil, nil)),
		Achievement:       NewAchievementHandler(&achievementServiceMock{}),
		Report:            NewReportHandler(&reportServiceMock{}),
		Upload:            NewUploadHandler(service.NewUploadService(nil, nil, nil, config.UploadsConfig{})),
	})
	return r
}

func mintToken(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(routesTestSecret))
	require.NoError(t, err)
	return signed
}

func performRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHierarchyRoutesAreAdminOnly(t *testing.T) {
	router := buildHierarchyRouter()

	listPaths := []string{
		"/api/v1/departments",
		"/api/v1/programs",
		"/api/v1/academic-structures",
		"/api/v1/divisions",
		"/api/v1/batches",
	}

	for _, role := range []models.UserRole{models.RoleStudent, models.RoleClassAdvisor, models.RoleHOD} {
		token := mintToken(t, "u-"+string(role), role)
		for _, path := range listPaths {
			resp := performRequest(router, http.MethodGet, path, token)
			assert.Equal(t, http.StatusForbidden, resp.Code, "role=%s path=%s", role, path)
		}
		resp := performRequest(router, http.MethodGet, "/api/v1/departments/d1", token)
		assert.Equal(t, http.StatusForbidden, resp.Code, "role=%s get by id", role)
	}
}

func TestHierarchyRoutesAdmitAdmin(t *testing.T) {
	router := buildHierarchyRouter()
	token := mintToken(t, "adm", models.RoleAdmin)

	resp := performRequest(router, http.MethodGet, "/api/v1/departments", token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Computer Engineering")

	resp = performRequest(router, http.MethodGet, "/api/v1/departments/d1", token)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestHierarchyRoutesRejectAnonymous(t *testing.T) {
	router := buildHierarchyRouter()

	resp := performRequest(router, http.MethodGet, "/api/v1/departments", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
