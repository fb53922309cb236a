package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fichado-app/fichado-backend-go/internal/config"
	appHTTP "github.com/fichado-app/fichado-backend-go/internal/handler/http"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/database"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/jwt"
	"github.com/fichado-app/fichado-backend-go/internal/repository/postgresql"
	attendanceService "github.com/fichado-app/fichado-backend-go/internal/service/attendance"
	geofenceService "github.com/fichado-app/fichado-backend-go/internal/service/geofence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	siteLocation, err := time.LoadLocation(cfg.Attendance.SiteTimezone)
	if err != nil {
		fmt.Println("Error loading site timezone:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	shiftLedger := postgresql.NewShiftLedger(db)
	geofenceRepo := postgresql.NewGeofenceConfigRepository(db)
	auditRecorder := postgresql.NewAuditLog(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	geofenceSvc := geofenceService.NewGeofenceService(
		geofenceRepo,
		auditRecorder,
		cfg.Attendance.GeofenceCacheTTL,
		cfg.Attendance.StorageTimeout,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		shiftLedger,
		geofenceSvc,
		auditRecorder,
		siteLocation,
		cfg.Attendance.StorageTimeout,
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	geofenceHandler := appHTTP.NewGeofenceHandler(geofenceSvc)

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		attendanceHandler,
		geofenceHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
