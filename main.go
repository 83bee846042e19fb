package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentals/internal/auth"
	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"
	"rentals/internal/events"
	router "rentals/internal/http"
	"rentals/internal/http/handlers"
	"rentals/internal/mail"
	"rentals/internal/services"
	"rentals/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.ConnectDB(ctx, env.DBDSN)
	if err != nil {
		log.Fatalf("Gagal konek database: %v", err)
	}
	defer intconfig.CloseDB()

	if err := intdb.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Gagal menyiapkan skema: %v", err)
	}

	hub := events.NewHub()
	go hub.Run()
	defer hub.Stop()

	hd := &handlers.Handlers{
		DB:             db,
		Hub:            hub,
		Issuer:         auth.NewIssuer(env.JWTSecret, env.SessionTTL),
		Revocations:    revocations(env.RedisURL),
		Store:          mediaStore(env),
		AdminEmail:     env.AdminEmail,
		PendingTTL:     env.PendingTTL,
		CookieSecure:   env.CookieSecure,
		AllowedOrigins: env.CORSOrigins,
		Templates: services.NotifyTemplates{
			Admin:         env.EmailJS.TemplateAdmin,
			ClientRecap:   env.EmailJS.TemplateClientRecap,
			ClientPayment: env.EmailJS.TemplateClientPayment,
		},
	}
	if env.EmailJS.ServiceID != "" && env.EmailJS.PublicKey != "" {
		hd.Sender = mail.NewEmailJS(env.EmailJS.Endpoint, env.EmailJS.ServiceID, env.EmailJS.PublicKey)
	} else {
		log.Println("warning: EmailJS belum dikonfigurasi, notifikasi email nonaktif")
	}

	authSvc := services.AuthService{DB: db, Issuer: hd.Issuer, Revocations: hd.Revocations, RequestID: "startup"}
	if err := authSvc.SeedAdmin(ctx, env.AdminEmail, env.AdminPassword); err != nil {
		log.Printf("warning: gagal seed admin: %v", err)
	}

	expiry := services.ExpiryService{
		Bookings: services.BookingService{DB: db, PendingTTL: env.PendingTTL, Events: hub, RequestID: "expiry"},
		Interval: env.ExpirySweepInterval,
	}
	go expiry.Run(ctx)

	opts := router.Options{CORSOrigins: env.CORSOrigins}
	if _, local := hd.Store.(storage.LocalStore); local {
		opts.MediaDir = env.MediaDir
	}
	r := router.NewRouter(hd, opts)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server berjalan di http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gagal menjalankan server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Mematikan server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown server gagal: %v", err)
	}

	log.Println("Server berhenti dengan aman.")
}

func revocations(redisURL string) auth.Revocations {
	if redisURL == "" {
		log.Println("REDIS_URL kosong, revokasi sesi disimpan di memori")
		return auth.NewMemoryRevocations()
	}
	client, err := auth.NewRedisClient(redisURL)
	if err != nil {
		log.Fatalf("REDIS_URL tidak valid: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Gagal konek ke redis: %v", err)
	}
	return auth.RedisRevocations{Client: client}
}

func mediaStore(env intconfig.Env) storage.Store {
	if env.Cloudinary.Enabled() {
		log.Printf("Upload media ke Cloudinary cloud=%s", env.Cloudinary.CloudName)
		return storage.CloudinaryStore{
			CloudName: env.Cloudinary.CloudName,
			APIKey:    env.Cloudinary.APIKey,
			APISecret: env.Cloudinary.APISecret,
			Folder:    env.Cloudinary.Folder,
		}
	}
	log.Printf("Upload media ke direktori lokal %s", env.MediaDir)
	return storage.LocalStore{Dir: env.MediaDir, BaseURL: env.MediaBaseURL}
}
