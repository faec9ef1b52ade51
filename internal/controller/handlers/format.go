package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/Freeeeeet/ybooking/internal/service"
)

var weekdayShort = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// WeekdayShortName краткое название дня недели, понедельник = 0
func WeekdayShortName(w model.Weekday) string {
	if !w.Valid() {
		return "?"
	}
	return weekdayShort[w]
}

// PluralizeSlots возвращает правильное склонение слова "слот"
func PluralizeSlots(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "слот"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "слота"
	}
	return "слотов"
}

// FormatSlot одна строка списка слотов
func FormatSlot(slot *model.Timetable, loc *time.Location) string {
	start := slot.Start.In(loc)
	return fmt.Sprintf("#%d  %s %s-%s",
		slot.ID,
		WeekdayShortName(model.WeekdayOf(start)),
		FormatDateTime(start),
		slot.Stop.In(loc).Format("15:04"),
	)
}

// FormatSlots список слотов с заголовком
func FormatSlots(title string, slots []*model.Timetable, loc *time.Location) string {
	if len(slots) == 0 {
		return title + "\n\nСлотов нет."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n%d %s\n\n", title, len(slots), PluralizeSlots(len(slots))))
	for _, slot := range slots {
		sb.WriteString(FormatSlot(slot, loc))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatOverview расписание врача
func FormatOverview(o *service.Overview) string {
	var sb strings.Builder
	sb.WriteString("🗓 Расписание\n\n")

	if o.Schedule != nil {
		sb.WriteString(fmt.Sprintf("Горизонт: %d дн., приём: %d мин\n", o.Schedule.PlanningDays, o.Schedule.SessionDuration))
	} else {
		sb.WriteString("Параметры не заданы: /setschedule <дней> <минут>\n")
	}

	sb.WriteString("\nОкна приёма:\n")
	if len(o.Intervals) == 0 {
		sb.WriteString("  нет\n")
	}
	for _, in := range o.Intervals {
		sb.WriteString(fmt.Sprintf("  #%d %s %s-%s\n", in.ID, WeekdayShortName(in.Weekday), model.FormatClock(in.Start), model.FormatClock(in.Stop)))
	}

	sb.WriteString("\nОтпуска:\n")
	if len(o.Vacations) == 0 {
		sb.WriteString("  нет\n")
	}
	for _, v := range o.Vacations {
		sb.WriteString(fmt.Sprintf("  #%d %s - %s\n", v.ID, FormatDate(v.StartDate), FormatDate(v.StopDate)))
	}

	return sb.String()
}

// FormatStats количество слотов по дням
func FormatStats(stats []model.DayStat) string {
	if len(stats) == 0 {
		return "📊 Слотов пока нет."
	}

	var sb strings.Builder
	sb.WriteString("📊 Слоты по дням\n\n")
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("%s: %d\n", FormatDate(s.Day), s.Count))
	}
	return sb.String()
}
