package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupage/school-api/internal/models"
	"github.com/edupage/school-api/pkg/config"
	appErrors "github.com/edupage/school-api/pkg/errors"
)

type scheduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	ListAll(ctx context.Context) ([]models.Schedule, error)
	ListByClassGroup(ctx context.Context, classGroupID string) ([]models.Schedule, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Schedule, error)
	FindTeacherConflicts(ctx context.Context, teacherID string, day models.DayOfWeek, start, end models.TimeOfDay) ([]models.Schedule, error)
	FindClassGroupConflicts(ctx context.Context, classGroupID string, day models.DayOfWeek, start, end models.TimeOfDay) ([]models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type teacherDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type subjectDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type classDirectory interface {
	FindByID(ctx context.Context, id string) (*models.ClassGroup, error)
}

type studentDirectory interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GenerationMapping pairs a teacher and a subject with the class groups they
// teach. Each class group is scheduled independently, in the given order.
// LessonsPerWeek overrides the subject's weekly hours when set.
type GenerationMapping struct {
	TeacherID      string   `json:"teacher_id" validate:"required"`
	SubjectID      string   `json:"subject_id" validate:"required"`
	ClassGroupIDs  []string `json:"class_group_ids" validate:"required,min=1,dive,required"`
	LessonsPerWeek int      `json:"lessons_per_week" validate:"omitempty,min=1,max=40"`
	Room           string   `json:"room"`
}

// GenerateScheduleRequest describes payload for a timetable generation run.
type GenerateScheduleRequest struct {
	Mappings []GenerationMapping `json:"mappings" validate:"required,min=1,dive"`
}

// MappingResult summarises placement for a single mapping. Placed may be less
// than Requested when the week runs out of free slots.
type MappingResult struct {
	ClassGroupID string            `json:"class_group_id"`
	TeacherID    string            `json:"teacher_id"`
	SubjectID    string            `json:"subject_id"`
	Requested    int               `json:"requested"`
	Placed       int               `json:"placed"`
	Lessons      []models.Schedule `json:"lessons"`
}

// GenerateScheduleResult aggregates placement across all mappings of a run.
type GenerateScheduleResult struct {
	Requested int             `json:"requested"`
	Placed    int             `json:"placed"`
	Mappings  []MappingResult `json:"mappings"`
}

// CreateScheduleRequest describes payload for placing a single lesson by hand.
type CreateScheduleRequest struct {
	ClassGroupID string `json:"class_group_id" validate:"required"`
	TeacherID    string `json:"teacher_id" validate:"required"`
	SubjectID    string `json:"subject_id" validate:"required"`
	DayOfWeek    string `json:"day_of_week" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Room         string `json:"room"`
	LessonNumber int    `json:"lesson_number" validate:"omitempty,min=1"`
}

// DaySchedule holds one weekday's lessons in start order.
type DaySchedule struct {
	Day     models.DayOfWeek  `json:"day_of_week"`
	Lessons []models.Schedule `json:"lessons"`
}

// WeeklySchedule is a timetable grouped by weekday.
type WeeklySchedule struct {
	ClassGroupID string        `json:"class_group_id,omitempty"`
	TeacherID    string        `json:"teacher_id,omitempty"`
	Days         []DaySchedule `json:"days"`
}

// ScheduleService coordinates timetable generation, manual placement and
// weekly views.
type ScheduleService struct {
	repo     scheduleRepository
	teachers teacherDirectory
	subjects subjectDirectory
	classes  classDirectory
	students studentDirectory
	cache    scheduleCache
	metrics  *MetricsService

	dayStart      models.TimeOfDay
	dayEnd        models.TimeOfDay
	lessonMinutes int
	breakMinutes  int
	cacheTTL      time.Duration

	locks     *keyedMutex
	weekViews map[models.UserRole]func(ctx context.Context, userID string) (*WeeklySchedule, error)
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService with the configured time grid.
func NewScheduleService(repo scheduleRepository, teachers teacherDirectory, subjects subjectDirectory, classes classDirectory, students studentDirectory, cache scheduleCache, metrics *MetricsService, cfg config.SchedulerConfig, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dayStart, err := models.ParseTimeOfDay(cfg.DayStart)
	if err != nil {
		dayStart, _ = models.ParseTimeOfDay("08:00")
	}
	dayEnd, err := models.ParseTimeOfDay(cfg.DayEnd)
	if err != nil {
		dayEnd, _ = models.ParseTimeOfDay("15:00")
	}
	lessonMinutes := cfg.LessonMinutes
	if lessonMinutes <= 0 {
		lessonMinutes = 45
	}
	breakMinutes := cfg.BreakMinutes
	if breakMinutes < 0 {
		breakMinutes = 15
	}

	s := &ScheduleService{
		repo:          repo,
		teachers:      teachers,
		subjects:      subjects,
		classes:       classes,
		students:      students,
		cache:         cache,
		metrics:       metrics,
		dayStart:      dayStart,
		dayEnd:        dayEnd,
		lessonMinutes: lessonMinutes,
		breakMinutes:  breakMinutes,
		cacheTTL:      cfg.CacheTTL,
		locks:         newKeyedMutex(),
		validator:     validate,
		logger:        logger,
	}

	s.weekViews = map[models.UserRole]func(ctx context.Context, userID string) (*WeeklySchedule, error){
		models.RoleStudent:    s.weekForStudentUser,
		models.RoleTeacher:    s.weekForTeacherUser,
		models.RoleAdmin:      s.weekForSchool,
		models.RoleAccountant: s.weekForSchool,
	}

	return s
}

// Generate fills the weekly timetable for each mapping greedily: weekdays are
// scanned Monday to Friday from the start of the day, and every free slot is
// taken until the requested lesson count is reached. Placements persist as
// they are found, so a run that cannot fit all lessons keeps what it placed.
func (s *ScheduleService) Generate(ctx context.Context, req GenerateScheduleRequest) (*GenerateScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	result := &GenerateScheduleResult{}
	for _, mapping := range req.Mappings {
		teacher, err := s.teachers.FindByID(ctx, mapping.TeacherID)
		if err != nil {
			return nil, mapLookupErr(err, "teacher not found")
		}
		subject, err := s.subjects.FindByID(ctx, mapping.SubjectID)
		if err != nil {
			return nil, mapLookupErr(err, "subject not found")
		}

		required := mapping.LessonsPerWeek
		if required <= 0 {
			required = subject.HoursPerWeek
		}
		if required <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s has no weekly hours and no override was given", subject.Code))
		}

		for _, classGroupID := range mapping.ClassGroupIDs {
			class, err := s.classes.FindByID(ctx, classGroupID)
			if err != nil {
				return nil, mapLookupErr(err, "class group not found")
			}

			unlock := s.locks.LockAll("teacher:"+teacher.ID, "class:"+class.ID)
			lessons, err := s.placeTriple(ctx, teacher.ID, subject.ID, class.ID, mapping.Room, required)
			unlock()
			if err != nil {
				return nil, err
			}

			if len(lessons) < required {
				s.logger.Warn("generation placed fewer lessons than requested",
					zap.String("class_group_id", class.ID),
					zap.String("teacher_id", teacher.ID),
					zap.String("subject_id", subject.ID),
					zap.Int("requested", required),
					zap.Int("placed", len(lessons)))
			}

			result.Requested += required
			result.Placed += len(lessons)
			result.Mappings = append(result.Mappings, MappingResult{
				ClassGroupID: class.ID,
				TeacherID:    teacher.ID,
				SubjectID:    subject.ID,
				Requested:    required,
				Placed:       len(lessons),
				Lessons:      lessons,
			})
		}
	}

	s.invalidateCache(ctx)
	return result, nil
}

// placeTriple scans the school week slot by slot for one (teacher, subject,
// class) triple. The lesson counter advances for every scanned slot of a day,
// so lesson numbers reflect grid position rather than placement order.
func (s *ScheduleService) placeTriple(ctx context.Context, teacherID, subjectID, classGroupID, roomName string, required int) ([]models.Schedule, error) {
	var room *string
	if roomName != "" {
		r := roomName
		room = &r
	}

	placed := make([]models.Schedule, 0, required)
days:
	for _, day := range models.SchoolWeek {
		lessonNumber := 1
		current := s.dayStart
		for {
			end := current.Add(s.lessonMinutes)
			if end > s.dayEnd {
				break
			}

			dimension, err := s.findConflictDimension(ctx, teacherID, classGroupID, day, current, end)
			if err != nil {
				return placed, err
			}
			if dimension == "" {
				entry := models.Schedule{
					ClassGroupID: classGroupID,
					TeacherID:    teacherID,
					SubjectID:    subjectID,
					DayOfWeek:    day,
					StartTime:    current,
					EndTime:      end,
					Room:         room,
					LessonNumber: lessonNumber,
				}
				if err := s.repo.Create(ctx, &entry); err != nil {
					return placed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist generated lesson")
				}
				placed = append(placed, entry)
				s.metrics.RecordLessonPlaced()
				if len(placed) == required {
					break days
				}
			} else {
				s.metrics.RecordSlotRejected(dimension)
			}

			lessonNumber++
			current = current.Add(s.lessonMinutes + s.breakMinutes)
		}
	}
	return placed, nil
}

// findConflictDimension returns "teacher" or "class" when the slot is taken,
// or the empty string when it is free. Teacher availability is checked first.
func (s *ScheduleService) findConflictDimension(ctx context.Context, teacherID, classGroupID string, day models.DayOfWeek, start, end models.TimeOfDay) (string, error) {
	busy, err := s.repo.FindTeacherConflicts(ctx, teacherID, day, start, end)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher availability")
	}
	if len(busy) > 0 {
		return "teacher", nil
	}

	busy, err = s.repo.FindClassGroupConflicts(ctx, classGroupID, day, start, end)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class availability")
	}
	if len(busy) > 0 {
		return "class", nil
	}
	return "", nil
}

// Create places a single lesson after conflict detection in both dimensions.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		return nil, mapLookupErr(err, "teacher not found")
	}
	class, err := s.classes.FindByID(ctx, req.ClassGroupID)
	if err != nil {
		return nil, mapLookupErr(err, "class group not found")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return nil, mapLookupErr(err, "subject not found")
	}

	day := models.DayOfWeek(req.DayOfWeek)
	unlock := s.locks.LockAll("teacher:"+teacher.ID, "class:"+class.ID)
	defer unlock()

	if err := s.checkSlotConflict(ctx, teacher.ID, class.ID, day, start, end, ""); err != nil {
		return nil, err
	}

	var room *string
	if req.Room != "" {
		r := req.Room
		room = &r
	}
	lessonNumber := req.LessonNumber
	if lessonNumber <= 0 {
		lessonNumber = s.gridPosition(start)
	}

	entry := models.Schedule{
		ClassGroupID: req.ClassGroupID,
		TeacherID:    req.TeacherID,
		SubjectID:    req.SubjectID,
		DayOfWeek:    day,
		StartTime:    start,
		EndTime:      end,
		Room:         room,
		LessonNumber: lessonNumber,
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}

	s.metrics.RecordLessonPlaced()
	s.invalidateCache(ctx)
	return &entry, nil
}

// checkSlotConflict returns a conflict error naming the blocking entry, or nil
// when the slot is free for both the teacher and the class. excludeID ignores
// the entry being edited so it does not conflict with itself.
func (s *ScheduleService) checkSlotConflict(ctx context.Context, teacherID, classGroupID string, day models.DayOfWeek, start, end models.TimeOfDay, excludeID string) error {
	busy, err := s.repo.FindTeacherConflicts(ctx, teacherID, day, start, end)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher availability")
	}
	if blocking := firstBlocking(busy, excludeID); blocking != nil {
		return conflictError("teacher", *blocking)
	}

	busy, err = s.repo.FindClassGroupConflicts(ctx, classGroupID, day, start, end)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class availability")
	}
	if blocking := firstBlocking(busy, excludeID); blocking != nil {
		return conflictError("class", *blocking)
	}
	return nil
}

func firstBlocking(busy []models.Schedule, excludeID string) *models.Schedule {
	for i := range busy {
		if excludeID != "" && busy[i].ID == excludeID {
			continue
		}
		return &busy[i]
	}
	return nil
}

func conflictError(dimension string, blocking models.Schedule) error {
	conflict := &models.ScheduleConflictError{
		Type:    dimension,
		Message: fmt.Sprintf("%s already occupied on %s %s-%s", dimension, blocking.DayOfWeek, blocking.StartTime, blocking.EndTime),
		Conflict: models.ScheduleConflict{
			ScheduleID:   blocking.ID,
			ClassGroupID: blocking.ClassGroupID,
			TeacherID:    blocking.TeacherID,
			SubjectID:    blocking.SubjectID,
			DayOfWeek:    blocking.DayOfWeek,
			StartTime:    blocking.StartTime,
			EndTime:      blocking.EndTime,
			Dimension:    dimension,
		},
	}
	return appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
}

// Update moves an existing lesson to a new slot. The entry itself is excluded
// from the conflict check so it can stay in or overlap its current slot.
func (s *ScheduleService) Update(ctx context.Context, id string, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "schedule not found")
	}

	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		return nil, mapLookupErr(err, "teacher not found")
	}
	class, err := s.classes.FindByID(ctx, req.ClassGroupID)
	if err != nil {
		return nil, mapLookupErr(err, "class group not found")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return nil, mapLookupErr(err, "subject not found")
	}

	day := models.DayOfWeek(req.DayOfWeek)
	unlock := s.locks.LockAll(
		"teacher:"+teacher.ID, "class:"+class.ID,
		"teacher:"+existing.TeacherID, "class:"+existing.ClassGroupID,
	)
	defer unlock()

	if err := s.checkSlotConflict(ctx, teacher.ID, class.ID, day, start, end, existing.ID); err != nil {
		return nil, err
	}

	var room *string
	if req.Room != "" {
		r := req.Room
		room = &r
	}
	lessonNumber := req.LessonNumber
	if lessonNumber <= 0 {
		lessonNumber = s.gridPosition(start)
	}

	existing.ClassGroupID = req.ClassGroupID
	existing.TeacherID = req.TeacherID
	existing.SubjectID = req.SubjectID
	existing.DayOfWeek = day
	existing.StartTime = start
	existing.EndTime = end
	existing.Room = room
	existing.LessonNumber = lessonNumber
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}

	s.invalidateCache(ctx)
	return existing, nil
}

// gridPosition maps a start time onto the configured grid, 1-based.
func (s *ScheduleService) gridPosition(start models.TimeOfDay) int {
	step := s.lessonMinutes + s.breakMinutes
	if step <= 0 || start < s.dayStart {
		return 1
	}
	return int(start-s.dayStart)/step + 1
}

// Delete removes a lesson from the timetable.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapLookupErr(err, "schedule not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateCache(ctx)
	return nil
}

// WeeklyForClass returns the class timetable grouped by weekday, cached.
func (s *ScheduleService) WeeklyForClass(ctx context.Context, classGroupID string) (*WeeklySchedule, error) {
	key := "schedule:class:" + classGroupID
	cached := &WeeklySchedule{}
	if err := s.cache.Get(ctx, key, cached); err == nil {
		s.metrics.RecordCacheOperation(true)
		return cached, nil
	}
	s.metrics.RecordCacheOperation(false)

	if _, err := s.classes.FindByID(ctx, classGroupID); err != nil {
		return nil, mapLookupErr(err, "class group not found")
	}
	entries, err := s.repo.ListByClassGroup(ctx, classGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class schedules")
	}

	week := &WeeklySchedule{ClassGroupID: classGroupID, Days: groupByDay(entries)}
	if err := s.cache.Set(ctx, key, week, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache class schedule", zap.String("class_group_id", classGroupID), zap.Error(err))
	}
	return week, nil
}

// WeeklyForTeacher returns the teacher timetable grouped by weekday, cached.
func (s *ScheduleService) WeeklyForTeacher(ctx context.Context, teacherID string) (*WeeklySchedule, error) {
	key := "schedule:teacher:" + teacherID
	cached := &WeeklySchedule{}
	if err := s.cache.Get(ctx, key, cached); err == nil {
		s.metrics.RecordCacheOperation(true)
		return cached, nil
	}
	s.metrics.RecordCacheOperation(false)

	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, mapLookupErr(err, "teacher not found")
	}
	entries, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher schedules")
	}

	week := &WeeklySchedule{TeacherID: teacherID, Days: groupByDay(entries)}
	if err := s.cache.Set(ctx, key, week, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache teacher schedule", zap.String("teacher_id", teacherID), zap.Error(err))
	}
	return week, nil
}

// WeeklyForUser resolves the week view appropriate for the caller's role:
// students see their class timetable, teachers their own, staff the whole
// school.
func (s *ScheduleService) WeeklyForUser(ctx context.Context, userID string, role models.UserRole) (*WeeklySchedule, error) {
	view, ok := s.weekViews[role]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("no week view for role %s", role))
	}
	return view(ctx, userID)
}

func (s *ScheduleService) weekForStudentUser(ctx context.Context, userID string) (*WeeklySchedule, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		return nil, mapLookupErr(err, "student profile not found")
	}
	if student.ClassGroupID == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not assigned to a class group")
	}
	return s.WeeklyForClass(ctx, *student.ClassGroupID)
}

func (s *ScheduleService) weekForTeacherUser(ctx context.Context, userID string) (*WeeklySchedule, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, mapLookupErr(err, "teacher profile not found")
	}
	return s.WeeklyForTeacher(ctx, teacher.ID)
}

func (s *ScheduleService) weekForSchool(ctx context.Context, _ string) (*WeeklySchedule, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return &WeeklySchedule{Days: groupByDay(entries)}, nil
}

func (s *ScheduleService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, "schedule:*"); err != nil {
		s.logger.Warn("failed to invalidate schedule cache", zap.Error(err))
	}
}

// groupByDay buckets entries by weekday. School days always appear; weekend
// days only when something is placed on them.
func groupByDay(entries []models.Schedule) []DaySchedule {
	byDay := make(map[models.DayOfWeek][]models.Schedule, len(models.SchoolWeek))
	for _, entry := range entries {
		byDay[entry.DayOfWeek] = append(byDay[entry.DayOfWeek], entry)
	}

	days := make([]DaySchedule, 0, len(models.SchoolWeek))
	for _, day := range models.SchoolWeek {
		lessons := byDay[day]
		if lessons == nil {
			lessons = []models.Schedule{}
		}
		days = append(days, DaySchedule{Day: day, Lessons: lessons})
	}
	for _, day := range []models.DayOfWeek{models.Saturday, models.Sunday} {
		if lessons, ok := byDay[day]; ok {
			days = append(days, DaySchedule{Day: day, Lessons: lessons})
		}
	}
	return days
}

// mapLookupErr converts a missing-row lookup into a 404 and anything else into
// a 500.
func mapLookupErr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
